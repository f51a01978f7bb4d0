// Package api contains the HTTP handlers, request/response models and
// error mapping for the public REST surface. Handlers validate input with
// go-playground/validator, delegate to the service layer and translate
// service errors into sanitized HTTP responses.
package api
