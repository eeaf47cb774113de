package server

import "time"

const (
	// RateLimitMessages is the number of websocket commands allowed
	// per window per connection.
	RateLimitMessages = 30
	// RateLimitWindow is the sliding window for command rate limiting.
	RateLimitWindow = time.Second
)
