package smc

import "github.com/joshuapare/smckit/internal/buf"

// Keys whose updates are decoded into debug log lines.
var (
	idNinjaActionJob   = PackName("NATJ")
	idNinjaActionTimer = PackName("NATi")
	idDisplaySleep     = PackName("MSDW")
)

var ninjaActionJobs = map[byte]string{
	0: "do nothing",
	1: "force shutdown to S5",
	2: "force restart",
	3: "force startup",
}

// describeUpdate logs what a host asked for when it writes one of the
// action keys.
func (s *Store) describeUpdate(id uint32, value []byte) {
	if len(value) == 0 {
		return
	}
	switch id {
	case idNinjaActionJob:
		if job, ok := ninjaActionJobs[value[0]]; ok {
			s.log.Debug("ninja action timer job", "action", job)
		}
	case idNinjaActionTimer:
		s.log.Debug("ninja action timer set", "period", buf.U16BE(value))
	case idDisplaySleep:
		switch value[0] {
		case 0:
			s.log.Debug("display is now asleep")
		case 1:
			s.log.Debug("display is now awake")
		}
	}
}
