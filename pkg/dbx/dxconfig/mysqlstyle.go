package dxconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// MySQLStyleParams is the result of parsing a MySQL-style connection
// string: whitespace-separated key=value or key='quoted value' tokens,
// with backslash escaping inside quotes. Every field's presence flag
// distinguishes "not supplied" from "supplied as the zero value",
// mirroring the original parser's bool-pointer out-params.
type MySQLStyleParams struct {
	Host       string
	HasHost    bool
	User       string
	HasUser    bool
	Password   string
	HasPassword bool
	DB         string
	HasDB      bool
	UnixSocket string
	HasUnixSocket bool
	Port       int
	HasPort    bool
}

// ParseMySQLStyle parses s per spec.md §6's grammar. Recognized keys are
// host, user, pass/password, db/dbname, unix_socket, port; any other key,
// a malformed quoted value, or a non-integer port is an error. Supplying
// the same key twice is accepted and the first occurrence wins, matching
// the original scanner's "if not already set" guard.
func ParseMySQLStyle(s string) (MySQLStyleParams, error) {
	var p MySQLStyleParams
	i := 0
	n := len(s)

	skipWhite := func() {
		for i < n && isSpace(s[i]) {
			i++
		}
	}

	for {
		skipWhite()
		if i >= n {
			return p, nil
		}

		nameStart := i
		for i < n && (isAlpha(s[i]) || s[i] == '_') {
			i++
		}
		name := s[nameStart:i]
		if name == "" {
			return p, fmt.Errorf("dxconfig: malformed connection string at offset %d", i)
		}

		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n || s[i] != '=' {
			return p, fmt.Errorf("dxconfig: malformed connection string: expected '=' after %q", name)
		}
		i++
		for i < n && isSpace(s[i]) {
			i++
		}

		val, newI, err := parseValue(s, i)
		if err != nil {
			return p, err
		}
		i = newI

		// A key already supplied keeps its first value.
		if (name == "port" && p.HasPort) || (name == "host" && p.HasHost) ||
			(name == "user" && p.HasUser) ||
			((name == "pass" || name == "password") && p.HasPassword) ||
			((name == "db" || name == "dbname") && p.HasDB) ||
			(name == "unix_socket" && p.HasUnixSocket) {
			continue
		}

		switch {
		case name == "port" && !p.HasPort:
			port, err := strconv.Atoi(val)
			if err != nil || port < 0 {
				return p, fmt.Errorf("dxconfig: malformed connection string: invalid port %q", val)
			}
			p.Port, p.HasPort = port, true
		case name == "host" && !p.HasHost:
			p.Host, p.HasHost = val, true
		case name == "user" && !p.HasUser:
			p.User, p.HasUser = val, true
		case (name == "pass" || name == "password") && !p.HasPassword:
			p.Password, p.HasPassword = val, true
		case (name == "db" || name == "dbname") && !p.HasDB:
			p.DB, p.HasDB = val, true
		case name == "unix_socket" && !p.HasUnixSocket:
			p.UnixSocket, p.HasUnixSocket = val, true
		default:
			return p, fmt.Errorf("dxconfig: malformed connection string: unrecognized key %q", name)
		}
	}
}

// parseValue reads one value starting at s[i]: a single-quoted run with
// backslash escapes, or an unquoted run terminated by whitespace or
// end-of-string.
func parseValue(s string, i int) (string, int, error) {
	n := len(s)
	if i < n && s[i] == '\'' {
		i++
		var val strings.Builder
		for {
			if i >= n {
				return "", i, fmt.Errorf("dxconfig: malformed connection string: unterminated quoted value")
			}
			c := s[i]
			if c == '\'' {
				i++
				return val.String(), i, nil
			}
			if c == '\\' {
				i++
				if i >= n {
					return "", i, fmt.Errorf("dxconfig: malformed connection string: trailing backslash")
				}
				val.WriteByte(s[i])
				i++
				continue
			}
			val.WriteByte(c)
			i++
		}
	}

	var val strings.Builder
	for i < n && !isSpace(s[i]) {
		if s[i] == '\'' {
			return "", i, fmt.Errorf("dxconfig: malformed connection string: unexpected quote in unquoted value")
		}
		if s[i] == '\\' {
			i++
			if i >= n {
				return "", i, fmt.Errorf("dxconfig: malformed connection string: trailing backslash")
			}
		}
		val.WriteByte(s[i])
		i++
	}
	return val.String(), i, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
