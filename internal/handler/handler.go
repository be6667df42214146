// Package handler provides HTTP request handlers for the catalog API.
package handler

import jsoniter "github.com/json-iterator/go"

// json is the codec shared by REST and websocket responses.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Books    int    `json:"books"`
	Capacity int    `json:"capacity"`
}
