// Package logger wraps zap for the controller and the trigger server:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing for the settings file and CLI flags,
//   - shorthand functions (Info, InfoKV, WarnKV, ErrorKV, ...).
//
// Components receive a context and log through the logger it carries, so
// every line of device diagnostics is scoped to the component that wrote it.
package logger
