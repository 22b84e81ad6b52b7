// Package logger wraps zap with a global sugared logger, console
// encoding and context helpers (ToContext/FromContext/WithName/WithKV).
//
// Code takes a context and logs through the context-scoped logger, so
// every component can attach its own name and fields without plumbing a
// logger value around explicitly.
package logger
