package main

// limiter hands out at most cap(l) concurrent slots.
type limiter chan struct{}

func newLimiter(n int) limiter {
	l := make(limiter, max(1, n))
	for i := 0; i < cap(l); i++ {
		l <- struct{}{}
	}
	return l
}

// GetToken blocks until a slot is free and returns the function releasing it.
func (l limiter) GetToken() func() {
	<-l
	return func() {
		l <- struct{}{}
	}
}
