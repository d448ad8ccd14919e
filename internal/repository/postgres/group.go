package postgres

import (
	"context"
	"time"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
)

type groupRepository struct {
	db DBTX
}

func NewGroupRepository(db DBTX) repository.GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	query := `INSERT INTO groups (name) VALUES ($1) RETURNING id, created_on`
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, group.Name).Scan(&group.ID, &createdOn); err != nil {
		if isUniqueViolation(err) {
			return domain.Validationf("group %q already exists", group.Name)
		}
		return err
	}
	group.CreatedOn = createdOn.Format("2006-01-02")
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	query := `SELECT id, name, created_on FROM groups WHERE id = $1`
	var group domain.Group
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&group.ID, &group.Name, &createdOn); err != nil {
		return nil, notFound(err, "group", id)
	}
	group.CreatedOn = createdOn.Format("2006-01-02")
	return &group, nil
}

func (r *groupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	query := `SELECT id, name, created_on FROM groups WHERE name = $1`
	var group domain.Group
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&group.ID, &group.Name, &createdOn); err != nil {
		return nil, notFoundRef(err, "group", name)
	}
	group.CreatedOn = createdOn.Format("2006-01-02")
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context) ([]domain.Group, error) {
	query := `SELECT id, name, created_on FROM groups ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var group domain.Group
		var createdOn time.Time
		if err := rows.Scan(&group.ID, &group.Name, &createdOn); err != nil {
			return nil, err
		}
		group.CreatedOn = createdOn.Format("2006-01-02")
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) error {
	query := `UPDATE groups SET name = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, group.Name, group.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.Validationf("group %q already exists", group.Name)
		}
		return err
	}
	return nil
}

func (r *groupRepository) AddMember(ctx context.Context, member *domain.GroupMember) error {
	query := `INSERT INTO group_members (group_id, person_id) VALUES ($1, $2) RETURNING joined_on`
	var joinedOn time.Time
	if err := r.db.QueryRowContext(ctx, query, member.GroupID, member.PersonID).Scan(&joinedOn); err != nil {
		if isUniqueViolation(err) {
			return domain.Validationf("person %d is already a member of group %d", member.PersonID, member.GroupID)
		}
		return err
	}
	member.JoinedOn = joinedOn.Format("2006-01-02")
	return nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, personID int64) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND person_id = $2`
	result, err := r.db.ExecContext(ctx, query, groupID, personID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.Validationf("person %d is not a member of group %d", personID, groupID)
	}
	return nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID int64) ([]domain.Person, error) {
	query := `SELECT p.id, p.full_name, p.created_on
	          FROM persons p
	          JOIN group_members gm ON gm.person_id = p.id
	          WHERE gm.group_id = $1
	          ORDER BY p.full_name`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Person
	for rows.Next() {
		var person domain.Person
		var createdOn time.Time
		if err := rows.Scan(&person.ID, &person.FullName, &createdOn); err != nil {
			return nil, err
		}
		person.CreatedOn = createdOn.Format("2006-01-02")
		members = append(members, person)
	}
	return members, rows.Err()
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, personID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND person_id = $2)`
	var isMember bool
	err := r.db.QueryRowContext(ctx, query, groupID, personID).Scan(&isMember)
	return isMember, err
}
