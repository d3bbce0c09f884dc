package dxconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMySQLStyleBasic(t *testing.T) {
	p, err := ParseMySQLStyle("host=localhost port=3306 user=root password=secret dbname=app")
	assert.NoError(t, err)
	assert.Equal(t, "localhost", p.Host)
	assert.True(t, p.HasHost)
	assert.Equal(t, 3306, p.Port)
	assert.True(t, p.HasPort)
	assert.Equal(t, "root", p.User)
	assert.Equal(t, "secret", p.Password)
	assert.Equal(t, "app", p.DB)
}

func TestParseMySQLStylePassAlias(t *testing.T) {
	p, err := ParseMySQLStyle("pass=secret db=app")
	assert.NoError(t, err)
	assert.Equal(t, "secret", p.Password)
	assert.Equal(t, "app", p.DB)
}

func TestParseMySQLStyleQuotedValueWithSpaces(t *testing.T) {
	p, err := ParseMySQLStyle("host='my host' user=root")
	assert.NoError(t, err)
	assert.Equal(t, "my host", p.Host)
	assert.Equal(t, "root", p.User)
}

func TestParseMySQLStyleQuotedValueWithEscapes(t *testing.T) {
	p, err := ParseMySQLStyle(`password='it\'s a secret'`)
	assert.NoError(t, err)
	assert.Equal(t, "it's a secret", p.Password)
}

func TestParseMySQLStyleUnixSocket(t *testing.T) {
	p, err := ParseMySQLStyle("unix_socket=/var/run/mysqld/mysqld.sock")
	assert.NoError(t, err)
	assert.Equal(t, "/var/run/mysqld/mysqld.sock", p.UnixSocket)
	assert.True(t, p.HasUnixSocket)
}

func TestParseMySQLStyleFirstOccurrenceWins(t *testing.T) {
	p, err := ParseMySQLStyle("host=first host=second")
	assert.NoError(t, err)
	assert.Equal(t, "first", p.Host)
}

func TestParseMySQLStyleEmptyString(t *testing.T) {
	p, err := ParseMySQLStyle("")
	assert.NoError(t, err)
	assert.False(t, p.HasHost)
	assert.False(t, p.HasPort)
}

func TestParseMySQLStyleUnrecognizedKeyFails(t *testing.T) {
	_, err := ParseMySQLStyle("bogus=1")
	assert.Error(t, err)
}

func TestParseMySQLStyleInvalidPortFails(t *testing.T) {
	_, err := ParseMySQLStyle("port=notanumber")
	assert.Error(t, err)
}

func TestParseMySQLStyleMissingEqualsFails(t *testing.T) {
	_, err := ParseMySQLStyle("host")
	assert.Error(t, err)
}

func TestParseMySQLStyleUnterminatedQuoteFails(t *testing.T) {
	_, err := ParseMySQLStyle("host='unterminated")
	assert.Error(t, err)
}

func TestParseMySQLStyleUnexpectedQuoteInUnquotedValueFails(t *testing.T) {
	_, err := ParseMySQLStyle("host=abc'def")
	assert.Error(t, err)
}
