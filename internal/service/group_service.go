package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
		"user_id", userID,
	)

	group := &models.Group{
		OwnerID:     userID,
		Name:        strings.TrimSpace(req.Msg.Name),
		Description: strings.TrimSpace(req.Msg.Description),
		Currency:    normalizeCurrency(req.Msg.Currency),
		IsActive:    true,
	}
	group.Members, err = validateGroup(group.Name, group.Currency, req.Msg.Members)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves one of the caller's groups.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListGroups retrieves the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsByOwner(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = groupToAPI(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup replaces a group's name, description, currency and members.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	slog.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	group.Name = strings.TrimSpace(req.Msg.Name)
	group.Description = strings.TrimSpace(req.Msg.Description)
	group.Currency = normalizeCurrency(req.Msg.Currency)
	if req.Msg.IsActive != nil {
		group.IsActive = *req.Msg.IsActive
	}
	group.Members, err = validateGroup(group.Name, group.Currency, req.Msg.Members)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group updated", "group_id", group.ID)

	return connect.NewResponse(&api.UpdateGroupResponse{Group: groupToAPI(group)}), nil
}

// DeleteGroup removes a group and all of its expenses.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", group.ID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember appends a member to the end of the group's member list.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("member name is required")
	}
	if group.HasMember(name) {
		return nil, connect.NewError(connect.CodeAlreadyExists, errors.New("member already in group"))
	}

	if err := s.store.AddGroupMembers(ctx, group.ID, []string{name}); err != nil {
		slog.Error("AddMember failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	group.Members = append(group.Members, name)

	return connect.NewResponse(&api.AddMemberResponse{Group: groupToAPI(group)}), nil
}

// RemoveMember removes a member from the group. Expenses that reference the
// member are kept; the member simply stops appearing in balances.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	group, err := loadOwnedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if err := s.store.RemoveGroupMember(ctx, group.ID, name); err != nil {
		slog.Warn("RemoveMember failed", "group_id", group.ID, "name", name, "error", err)
		return nil, toConnectError(err)
	}

	members := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		if m != name {
			members = append(members, m)
		}
	}
	group.Members = members

	return connect.NewResponse(&api.RemoveMemberResponse{Group: groupToAPI(group)}), nil
}

// GetGroupBalances computes every member's balance and the suggested
// settlements from the group's expenses.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}

	group, expenses, err := s.store.LoadLedger(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && group.OwnerID != userID) {
		return nil, connect.NewError(connect.CodeNotFound, errGroupNotFound)
	}
	if err != nil {
		slog.Error("GetGroupBalances failed - could not load ledger", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	calcExpenses := models.ToCalculatorExpenses(expenses)
	balances, settlements, err := calculator.Plan(group.Members, calcExpenses)
	if err != nil {
		slog.Error("GetGroupBalances failed - calculation error", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	metrics.SettlementsSuggested.Observe(float64(len(settlements)))

	total := calculator.TotalSpend(calcExpenses)
	resp := &api.GetGroupBalancesResponse{
		Balances:       make([]*api.MemberBalance, len(balances)),
		Settlements:    make([]*api.Settlement, len(settlements)),
		TotalSpend:     total,
		FormattedTotal: money.FormatAmount(total, group.Currency),
		Currency:       group.Currency,
	}
	for i, bal := range balances {
		resp.Balances[i] = &api.MemberBalance{
			MemberName: bal.MemberName,
			TotalPaid:  bal.TotalPaid,
			TotalOwed:  bal.TotalOwed,
			NetBalance: bal.NetBalance,
		}
	}
	for i, st := range settlements {
		resp.Settlements[i] = &api.Settlement{From: st.From, To: st.To, Amount: st.Amount}
	}

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"members_count", len(balances),
		"settlements_count", len(settlements),
	)

	return connect.NewResponse(resp), nil
}

func validateGroup(name, currency string, members []string) ([]string, error) {
	if name == "" {
		return nil, invalidArgument("group name is required")
	}
	if currency == "" {
		return nil, invalidArgument("currency is required")
	}
	if len(members) == 0 {
		return nil, invalidArgument("at least one member is required")
	}
	return normalizeNames("members", members)
}

func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// loadOwnedGroup fetches a group and hides groups owned by someone else
// behind NotFound.
func loadOwnedGroup(ctx context.Context, store storage.Store, groupID string) (*models.Group, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}

	group, err := store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && group.OwnerID != userID) {
		return nil, connect.NewError(connect.CodeNotFound, errGroupNotFound)
	}
	if err != nil {
		slog.Error("Failed to load group", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	return group, nil
}
