// Package descriptor is the operation descriptor of a unionfn set as data.
//
// A descriptor names the set, its context and output types, and each
// operation's ordered argument list with WIT field types. Descriptors are
// derived from a sealed set with FromInfo, validated with Validate, laid
// out with the Canonical ABI rules of package layout and rendered as YAML
// or text by the describe command.
package descriptor
