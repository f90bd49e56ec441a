// Package bootstrap implements the environment bootstrap workflow:
// validate configuration, ensure the conda toolchain, authenticate to
// GitHub, clone and pin the repository, provision the execution
// environment, install dependencies, and hand control to the caller's
// command. External tools sit behind narrow interfaces so the retry and
// install-precedence logic is testable without network or conda access.
package bootstrap
