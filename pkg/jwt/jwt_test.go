package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/farmacia-api/pkg/jwt"
)

const secret = "secreto-de-pruebas"

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "org-1", "pharmacist", "farmacia-api", 5)
	require.NoError(t, err)

	userID, orgID, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "org-1", orgID)
	assert.Equal(t, "pharmacist", role)
}

func TestParse_Errores(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "org-1", "admin", "farmacia-api", -1)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "expirado")

	valid, err := pkgjwt.Generate(secret, "user-1", "org-1", "admin", "farmacia-api", 5)
	require.NoError(t, err)
	_, _, _, err = pkgjwt.Parse("otro", valid)
	assert.Error(t, err, "firma")

	_, _, _, err = pkgjwt.Parse("", valid)
	assert.Error(t, err, "secret vacío")

	_, err = pkgjwt.Generate("", "user-1", "org-1", "admin", "farmacia-api", 5)
	assert.Error(t, err)
}
