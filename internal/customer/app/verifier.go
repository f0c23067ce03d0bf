package app

import "golang.org/x/crypto/bcrypt"

// Verifier hashes and checks passwords with bcrypt.
type Verifier struct {
	cost int
}

func NewVerifier(cost int) *Verifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Verifier{cost: cost}
}

func (v *Verifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash never
// matches.
func (v *Verifier) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
