package event

// VersionGate lets a viewer skip screens older than the one it already shows.
// Events other than screens always pass. Not safe for concurrent use: each
// transport pump owns its gate.
type VersionGate struct {
	last uint64
	seen bool
}

// NewVersionGate returns a gate that has not passed any screen yet.
func NewVersionGate() *VersionGate {
	return &VersionGate{}
}

// Seen records that the viewer already shows version v.
func (g *VersionGate) Seen(v uint64) {
	if !g.seen || v > g.last {
		g.last = v
		g.seen = true
	}
}

// Admit reports whether ev should reach the viewer and records it if so.
func (g *VersionGate) Admit(ev Eventer) bool {
	s, ok := ev.(*ScreenEvent)
	if !ok {
		return true
	}
	v := s.screen.Version
	if g.seen && v <= g.last {
		return false
	}
	g.Seen(v)
	return true
}
