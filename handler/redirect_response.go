package handler

import "net/http"

type redirectResponse struct {
	url  string
	code int
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	if IsDataStar(req) {
		return NewSSE(w, req).Redirect(r.url)
	}
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect sends the client to url with 303 See Other. DataStar requests get
// a script-driven redirect instead.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}
