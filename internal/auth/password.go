package auth

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt with a configured cost so the work factor stays
// tunable from the environment.
type Hasher struct {
	Cost int
}

// Hash derives a salted bcrypt hash from a plaintext password.
func (h Hasher) Hash(pw string) (string, error) {
	cost := h.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

// Check compares a bcrypt hash with a candidate plaintext password.
func (h Hasher) Check(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}
