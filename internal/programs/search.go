package programs

import "net/url"

const searchBaseURL = "https://www.google.com/search"

// ProgramSearchURL builds a web search for universities offering option.
func ProgramSearchURL(option string) string {
	return searchURL(option + " programs universities")
}

// ScholarshipSearchURL builds a web search for scholarships related to option.
func ScholarshipSearchURL(option string) string {
	return searchURL(option + " scholarships international students")
}

func searchURL(query string) string {
	return searchBaseURL + "?" + url.Values{"q": {query}}.Encode()
}
