package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateISBN_ThirteenDigit(t *testing.T) {
	t.Parallel()

	require.Equal(t, "9788983920683", ValidateISBN("9788983920683"))
	require.Equal(t, "9788983920683", ValidateISBN("978-89-8392-068-3"))
	require.Equal(t, "", ValidateISBN("9788983920684"))
}

func TestValidateISBN_TenDigit(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0451063953", ValidateISBN("0451063953"))
	require.Equal(t, "080442957X", ValidateISBN("080442957x"))
	require.Equal(t, "", ValidateISBN("0451063954"))
}

func TestValidateISBN_Garbage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", ValidateISBN(""))
	require.Equal(t, "", ValidateISBN("not-an-isbn"))
	require.Equal(t, "", ValidateISBN("12345"))
	require.Equal(t, "", ValidateISBN("97889839206831"))
}

func TestValidateISBN_AllSameDigit(t *testing.T) {
	t.Parallel()

	// These pass the plain checksums but are placeholder values, not ISBNs.
	require.Equal(t, "", ValidateISBN("0000000000"))
	require.Equal(t, "", ValidateISBN("1111111111"))
	require.Equal(t, "", ValidateISBN("0000000000000"))
}
