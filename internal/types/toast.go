package types

type ToastKind string

const (
	ToastKindSuccess ToastKind = "success"
	ToastKindWarning ToastKind = "warning"
	ToastKindError   ToastKind = "error"
)

// Toast is the single human readable outcome of a user visible operation
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}
