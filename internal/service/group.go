package service

import (
	"context"
	"strings"

	"debtledger-backend/internal/domain"
	"debtledger-backend/internal/repository"
)

type groupService struct {
	store repository.Store
}

func NewGroupService(store repository.Store) GroupService {
	return &groupService{store: store}
}

func (s *groupService) CreateGroup(ctx context.Context, name string, memberNames []string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("group name must not be empty")
	}

	var group *domain.Group
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		group = &domain.Group{Name: name}
		if err := repos.Groups().Create(ctx, group); err != nil {
			return err
		}

		seen := make(map[string]bool, len(memberNames))
		for _, memberName := range memberNames {
			memberName = strings.TrimSpace(memberName)
			if memberName == "" || seen[memberName] {
				continue
			}
			seen[memberName] = true

			person, err := ensurePerson(ctx, repos.Persons(), memberName)
			if err != nil {
				return err
			}
			member := &domain.GroupMember{GroupID: group.ID, PersonID: person.ID}
			if err := repos.Groups().AddMember(ctx, member); err != nil {
				return err
			}
		}

		members, err := repos.Groups().ListMembers(ctx, group.ID)
		if err != nil {
			return err
		}
		group.Members = members
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	group, err := s.store.Groups().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	members, err := s.store.Groups().ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.store.Groups().List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range groups {
		members, err := s.store.Groups().ListMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

func (s *groupService) RenameGroup(ctx context.Context, id int64, name string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("group name must not be empty")
	}

	group, err := s.store.Groups().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	group.Name = name
	if err := s.store.Groups().Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) AddMember(ctx context.Context, groupID int64, personName string) (*domain.Group, error) {
	var group *domain.Group
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		group, err = repos.Groups().GetByID(ctx, groupID)
		if err != nil {
			return err
		}

		person, err := ensurePerson(ctx, repos.Persons(), personName)
		if err != nil {
			return err
		}

		member := &domain.GroupMember{GroupID: groupID, PersonID: person.ID}
		if err := repos.Groups().AddMember(ctx, member); err != nil {
			return err
		}

		members, err := repos.Groups().ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		group.Members = members
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, personID int64) error {
	if _, err := s.store.Groups().GetByID(ctx, groupID); err != nil {
		return err
	}
	return s.store.Groups().RemoveMember(ctx, groupID, personID)
}
