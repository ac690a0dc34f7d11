// Package api provides the HTTP client for the external pricing oracle and
// the settlement gateway.
//
// Endpoints:
//   - GET  /premium?strike=10000&side=C  -> {"premium": 0.47}
//   - POST /settle                       -> {"tx_hash": "0x..."}
//
// Oracle reads are retried with jittered exponential backoff. Settlement
// requests move funds and are never retried.
package api
