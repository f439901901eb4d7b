package spatial

import (
	"strings"

	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

var directionPhrase = map[protocol.Direction]string{
	protocol.DirectionLeft:   "on your left",
	protocol.DirectionCenter: "ahead",
	protocol.DirectionRight:  "on your right",
}

var zonePhrase = map[protocol.Zone]string{
	protocol.ZoneNear: "very close",
	protocol.ZoneMid:  "a few steps away",
	protocol.ZoneFar:  "in the distance",
}

var movementPhrase = map[protocol.Movement]string{
	protocol.MovementApproaching: "approaching",
	protocol.MovementReceding:    "moving away",
}

// Text composes guidance such as "chair on your left, in the distance" or
// "person ahead, very close, approaching".
func Text(label string, dir protocol.Direction, zone protocol.Zone, mov protocol.Movement) string {
	var b strings.Builder
	b.WriteString(label)
	b.WriteByte(' ')
	b.WriteString(directionPhrase[dir])
	b.WriteString(", ")
	b.WriteString(zonePhrase[zone])
	if p, ok := movementPhrase[mov]; ok {
		b.WriteString(", ")
		b.WriteString(p)
	}
	return b.String()
}
