package domain

type Person struct {
	ID        int64  `json:"id"`
	FullName  string `json:"full_name"`
	CreatedOn string `json:"created_on"`
}
