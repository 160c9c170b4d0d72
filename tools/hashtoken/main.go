// Command hashtoken prints the INGEST_TOKEN_HASH for an ingest token. With no
// argument it generates a new random token first.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/google/uuid"
)

func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

func main() {
	token := uuid.NewString()
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	fmt.Println("Token:", token)
	fmt.Println("INGEST_TOKEN_HASH:", hashToken(token))
}
