package services

import "time"

// timeNow is swapped by tests that exercise TTL and timestamp rules.
var timeNow = time.Now
