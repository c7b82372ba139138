// Package record defines the patient records merged by zedup scripts and
// reads and writes them as YAML.
package record
