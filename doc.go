// Package main provides the entry point for the profile portal application.
// It initializes and runs a web server using the Fiber framework where users
// authenticate through an OpenID Connect identity provider and maintain their
// own profile information. The application uses gorm for data persistence and
// keeps session state in a signed, client-carried cookie.
package main
