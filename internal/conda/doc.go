// Package conda wraps the conda CLI operations gantry uses: installing the
// toolchain itself, creating and updating environments, and running
// commands (pip included) inside an environment. Environment and
// dependency resolution internals are delegated entirely to conda and pip.
package conda
