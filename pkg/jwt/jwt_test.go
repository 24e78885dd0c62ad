package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

func TestGenerateParse(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cr3t", "user-1", pkgjwt.RoleBodeguero, "ledger-test", 5)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse("s3cr3t", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, pkgjwt.RoleBodeguero, role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cr3t", "user-1", pkgjwt.RoleAdmin, "ledger-test", 5)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate("s3cr3t", "user-1", pkgjwt.RoleAdmin, "ledger-test", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("s3cr3t", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "user-1", pkgjwt.RoleAdmin, "ledger-test", 5)
	assert.Error(t, err)
}
