// Package sensors provides synthetic value providers and registers fan and
// GPU sensor sources with a Store.
//
// Fans and GPUs receive stable indices from the Store's slot allocators;
// the index is part of the key name:
//
//	F<i>Ac  fpe2  actual fan speed (provider)
//	F<i>Mn  fpe2  minimum fan speed
//	F<i>Mx  fpe2  maximum fan speed
//	TG<i>P  sp78  GPU proximity temperature (provider)
//
// where <i> is the slot index as one hex digit.
package sensors
