package sandbox

import "github.com/toqueteos/webbrowser"

// Opener shows a URL to the user, normally in the system browser.
type Opener interface {
	Open(url string) error
}

type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error {
	return f(url)
}

type BrowserOpener struct{}

func (BrowserOpener) Open(url string) error {
	return webbrowser.Open(url)
}
