package service

import "errors"

// Errores del motor de asignación. Los handlers los distinguen con errors.Is.
var (
	ErrInvalidFunds       = errors.New("fondos disponibles inválidos")
	ErrInsufficientFunds  = errors.New("los fondos disponibles no cubren los pagos mínimos")
	ErrUnknownAccount     = errors.New("cuenta no encontrada en el plan")
	ErrNoEligibleAccounts = errors.New("ninguna cuenta tiene saldo pendiente")
	ErrInvalidAccount     = errors.New("cuenta inválida")
	ErrInvalidStrategy    = errors.New("estrategia inválida")
)
