package sequence

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Generator produce números legibles PREFIJO-YYYYMMDD-NNN.
// El sufijo es aleatorio: la unicidad es orientativa y la garantiza el índice único en BD.
type Generator struct {
	prefix string
	now    func() time.Time
	intn   func(n int) int
}

// NewGenerator construye un generador con reloj y aleatoriedad reales.
func NewGenerator(prefix string) *Generator {
	return &Generator{prefix: prefix, now: time.Now, intn: rand.IntN}
}

// NewGeneratorWith permite inyectar reloj y fuente aleatoria (tests).
func NewGeneratorWith(prefix string, now func() time.Time, intn func(n int) int) *Generator {
	return &Generator{prefix: prefix, now: now, intn: intn}
}

// Next devuelve el siguiente número.
func (g *Generator) Next() string {
	return fmt.Sprintf("%s-%s-%03d", g.prefix, g.now().Format("20060102"), g.intn(1000))
}
