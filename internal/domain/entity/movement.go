package entity

import "time"

// MovementDirection sentido de un movimiento del libro de entradas/salidas.
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"  // entrada
	MovementOut MovementDirection = "OUT" // salida (consumo)
)

// MovementRecord es un registro inmutable del libro de movimientos. Quantity siempre es positiva;
// el sentido lo da Direction.
type MovementRecord struct {
	ItemID    string
	Quantity  int
	Timestamp time.Time
	Direction MovementDirection
}
