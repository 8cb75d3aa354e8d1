package webui

import (
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/welcome"
)

type WelcomeState struct {
	Status
	Ready bool
}

func ReduceWelcome(s WelcomeState, a UIAction) WelcomeState {
	if st, ok := s.Status.reduce(a); ok {
		s.Status = st
		return s
	}
	switch a := a.(type) {
	case Received:
		switch m := a.Message.(type) {
		case welcome.Init:
			s.Ready = true
			s.IsLoading = false
		default:
			ipc.Unreachable(m)
		}
	default:
		ipc.Unreachable(a)
	}
	return s
}
