package ports

import "context"

// ReachabilitySource emits "went online" (true) and "went offline" (false)
// signals from the environment.
type ReachabilitySource interface {
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Clipboard places text on the user's clipboard. ok is false when the
// clipboard could not be reached.
type Clipboard interface {
	Copy(ctx context.Context, text string) (ok bool, err error)
}

// FileSaver offers content to the user as a downloadable file. It is best
// effort and reports nothing back.
type FileSaver interface {
	Save(content, filename string)
}
