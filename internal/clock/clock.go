// Package clock abstrae la fuente de tiempo para poder inyectarla en tests.
package clock

import "time"

// Clock provee el tiempo actual.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System retorna el reloj del sistema (UTC).
func System() Clock { return systemClock{} }

// Fixed retorna un reloj congelado en t. Útil en tests.
func Fixed(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }
