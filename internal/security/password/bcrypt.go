package password

import "golang.org/x/crypto/bcrypt"

// Hash normaliza y hashea una contraseña con bcrypt (cost default).
func Hash(plain string) (string, error) {
	norm, err := Normalize(&plain)
	if err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(norm), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara una contraseña en claro contra un hash bcrypt almacenado.
func Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	norm, err := Normalize(&plain)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(norm)) == nil
}
