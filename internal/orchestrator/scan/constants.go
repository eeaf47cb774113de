package scan

import "time"

// ErrorBackoff is how long the loop rests after a failed iteration
// so a broken capture backend or OCR service is not spun on.
const ErrorBackoff = time.Second
