package canvas

import "sync"

// PointerCapture attaches window-level move/up listeners for the length of
// a gesture. Capture returns the function that detaches them.
type PointerCapture interface {
	Capture() (release func())
}

// CaptureFunc adapts a function to PointerCapture.
type CaptureFunc func() func()

func (f CaptureFunc) Capture() func() { return f() }

type noCapture struct{}

func (noCapture) Capture() func() { return func() {} }

// Subscription is a gesture-scoped listener registration. Release is safe
// to call any number of times and on a nil Subscription.
type Subscription struct {
	once    sync.Once
	release func()
}

func subscribe(pc PointerCapture) *Subscription {
	return &Subscription{release: pc.Capture()}
}

// Release detaches the gesture listeners.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}
