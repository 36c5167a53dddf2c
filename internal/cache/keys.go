package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/secureproxy/validation-gateway/internal/models"
)

// Key derives the content-addressed cache key:
// validation:{kind}:{level}:{hex(sha256(content))}. Kind and level are part
// of the key because the same content can produce different verdicts under
// different policies.
func Key(content []byte, kind models.ContentKind, level models.SecurityLevel) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("validation:%s:%s:%s", kind, level, hex.EncodeToString(sum[:]))
}

func counterKey(name string) string {
	return fmt.Sprintf("counter:%s", name)
}
