package password

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NilIsMissing(t *testing.T) {
	_, err := Normalize(nil)
	require.ErrorIs(t, err, ErrMissingCredential)
}

func TestNormalize_EmptyPassesThrough(t *testing.T) {
	s := ""
	got, err := Normalize(&s)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestNormalize_IdentityUpTo72Bytes(t *testing.T) {
	cases := []string{
		"hunter2",
		strings.Repeat("a", 72),
		strings.Repeat("ñ", 36),  // 72 bytes de runes de 2 bytes
		"contraseña-segura 密码 🔒", // mezcla multi-byte bajo el límite
	}
	for _, s := range cases {
		s := s
		got, err := Normalize(&s)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestNormalize_TruncatesAsciiAt72(t *testing.T) {
	s := strings.Repeat("a", 100)
	got, err := Normalize(&s)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 72), got)
}

func TestNormalize_NeverSplitsCodePoint(t *testing.T) {
	// 20 runes de 4 bytes = 80 bytes; 72/4 = 18 exactos.
	s := strings.Repeat("🔑", 20)
	got, err := Normalize(&s)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("🔑", 18), got)
	assert.Equal(t, 72, len(got))

	// 3-byte runes: 72 no es múltiplo de 3 desde 71a + rune → corta antes del rune.
	s2 := strings.Repeat("a", 71) + "密密"
	got2, err := Normalize(&s2)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got2))
	assert.LessOrEqual(t, len(got2), 72)
	assert.Equal(t, strings.Repeat("a", 71), got2)
}

func TestNormalize_ResultAlwaysValidUTF8(t *testing.T) {
	for _, r := range []string{"é", "密", "🔒"} {
		for n := 30; n <= 80; n++ {
			s := strings.Repeat(r, n)
			got, err := Normalize(&s)
			require.NoError(t, err)
			assert.True(t, utf8.ValidString(got), "repeat(%q,%d)", r, n)
			assert.LessOrEqual(t, len(got), 72)
		}
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	h, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, Verify("correct horse battery staple", h))
	assert.False(t, Verify("wrong", h))
	assert.False(t, Verify("anything", ""))
}

func TestHashVerify_LongPasswordsAgreeOnTruncation(t *testing.T) {
	// Dos contraseñas idénticas hasta el byte 72 deben verificar igual.
	base := strings.Repeat("🔑", 18) // exactamente 72 bytes
	long := base + "🔑🔑"
	h, err := Hash(long)
	require.NoError(t, err)
	assert.True(t, Verify(base, h))
}
