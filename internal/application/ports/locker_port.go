package ports

import "context"

// ProductLocker serializa escrituras de stock de un mismo producto entre instancias.
// Es un refuerzo: la guarda condicionada del almacenamiento sigue siendo la autoridad.
type ProductLocker interface {
	// Lock devuelve la función para liberar el candado.
	Lock(ctx context.Context, productID string) (unlock func(), err error)
}

// NoopLocker no bloquea nada (despliegue de una sola instancia o tests).
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }
