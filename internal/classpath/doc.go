// Package classpath collects the runtime module references handed to the
// isolated analysis worker.
//
// An Assembler is mutable only while the build is being configured. The app
// freezes it exactly once, right after the configuration pass; from then on
// the entry list is immutable and any further registration is a
// configuration-ordering bug that fails loudly.
package classpath
