//go:build !(linux || darwin || freebsd)

package arena

func mmapSource() (Source, bool) { return nil, false }
