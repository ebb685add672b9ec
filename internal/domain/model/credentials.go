package model

// Credentials are the iiko API login and the plain password; the password is
// hashed only when it is sent.
type Credentials struct {
	// Login is the iiko user name
	Login string
	// Password is kept in plain text until login
	Password string
}

// Server is one configured iiko server.
type Server struct {
	// Name is the alias shown to operators
	Name string
	// Address is "host[:port]" or a full base URL
	Address string
}
