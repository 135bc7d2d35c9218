// Package logger provee un logger estructurado (zap) para todo el servicio.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: "prod", Level: "info", ServiceName: "garrison"})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Component("auth.callback"))
//	log.Info("discord account linked", logger.UserID(id))
//
// El middleware HTTP inyecta un logger scoped por request (request_id, method,
// path); From(ctx) cae al singleton cuando no hay logger en el contexto.
package logger
