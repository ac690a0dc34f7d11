// Package connection implements a websocket client for the live ladder stream.
//
// The client dials /ws/orderbook, keeps the connection alive with pings and
// delivers every received frame, stamped with its local receive time, on a
// buffered channel. Frames are dropped rather than blocking the read loop
// when the consumer falls behind.
package connection
