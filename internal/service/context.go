package service

import "context"

type contextKey string

const operatorKey contextKey = "operator"

// OperatorInfo defines the structured identity of a user
type OperatorInfo struct {
	UserID uint64
	Name   string
	Role   string
}

// WithOperator injects the operator info into the context
func WithOperator(ctx context.Context, op *OperatorInfo) context.Context {
	return context.WithValue(ctx, operatorKey, op)
}

// GetOperatorInfo retrieves the operator info from the context
func GetOperatorInfo(ctx context.Context) *OperatorInfo {
	val, ok := ctx.Value(operatorKey).(*OperatorInfo)
	if !ok {
		return nil
	}
	return val
}

// ActorID is the acting user for history attribution, nil for system calls.
func ActorID(ctx context.Context) *uint64 {
	op := GetOperatorInfo(ctx)
	if op == nil || op.UserID == 0 {
		return nil
	}
	id := op.UserID
	return &id
}

// GetOperator returns the operator name, "system" when unauthenticated.
func GetOperator(ctx context.Context) string {
	op := GetOperatorInfo(ctx)
	if op == nil {
		return "system"
	}
	return op.Name
}
