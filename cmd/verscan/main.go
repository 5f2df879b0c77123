// Package main provides the entry point for the verscan CLI.
//
// verscan identifies the deployed version of a web application by
// enumerating the published release tags of its upstream repository and
// probing the target for version-stamped static assets.
//
// Usage:
//
//	verscan scan https://sso.example.com
//	verscan tags --repo goauthentik/authentik
package main

func main() {
	Execute()
}
