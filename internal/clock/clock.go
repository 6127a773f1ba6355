package clock

import "time"

// Clock di-inject ke service supaya cek window & limit harian deterministik di test.
type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed selalu mengembalikan waktu yang sama.
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }
