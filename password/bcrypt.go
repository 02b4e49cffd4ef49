package password

import "golang.org/x/crypto/bcrypt"

// Bcrypt hashes and compares passwords with a fixed cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt clamps out-of-range costs to the bcrypt default.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash hashes a plaintext password.
func (b *Bcrypt) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare verifies a plaintext password against its stored hash. A non-nil
// error means mismatch (or a corrupt hash); callers treat both the same.
func (b *Bcrypt) Compare(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
