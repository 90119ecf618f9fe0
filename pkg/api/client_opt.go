package api

import (
	"net/http"
)

type oauth2Opt struct {
	token string
}

func OAuth2(prefix, token string) *oauth2Opt {
	return &oauth2Opt{token: prefix + " " + token}
}

// Bearer is the authorization used by every hot API call.
func Bearer(token string) *oauth2Opt {
	return OAuth2("Bearer", token)
}

func (opt *oauth2Opt) Do(client defaultClient, req *http.Request) {
	if opt.token == "" || opt.token == "Bearer " {
		return
	}
	req.Header.Set("Authorization", opt.token)
}
