package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ReportKey returns a stable identifier for a resume and job description pair.
// The NUL separator keeps ("ab","c") and ("a","bc") apart.
func ReportKey(resume, jobDescription string) string {
	h := sha256.New()
	h.Write([]byte(resume))
	h.Write([]byte{0})
	h.Write([]byte(jobDescription))
	return hex.EncodeToString(h.Sum(nil))
}
