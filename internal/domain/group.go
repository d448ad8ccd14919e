package domain

type Group struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedOn string `json:"created_on"`

	// Members is populated by reads that join the membership table.
	Members []Person `json:"members,omitempty"`
}

type GroupMember struct {
	GroupID  int64  `json:"group_id"`
	PersonID int64  `json:"person_id"`
	JoinedOn string `json:"joined_on"`
}
