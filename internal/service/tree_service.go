package service

import (
	"strings"
	"time"

	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"gorm.io/gorm"
)

const treeDefaultDepth = 3

// TreeService binary placement tree over the distributor table. Child
// pointers and ParentID/Position are kept mutually consistent: every move is
// detach + attach in one transaction, and a slot is never silently displaced.
type TreeService struct {
	distributorRepo repository.DistributorRepository
}

// TreeNode one rendered node of a subtree
type TreeNode struct {
	ID          uint         `json:"id"`
	Email       string       `json:"email"`
	FullName    string       `json:"full_name"`
	Status      string       `json:"status"`
	Position    string       `json:"position,omitempty"`
	LeftWallet  models.Money `json:"left_wallet"`
	RightWallet models.Money `json:"right_wallet"`
	TotalWallet models.Money `json:"total_wallet"`
	Left        *TreeNode    `json:"left,omitempty"`
	Right       *TreeNode    `json:"right,omitempty"`
}

// NewTreeService creates the tree service
func NewTreeService(distributorRepo repository.DistributorRepository) *TreeService {
	return &TreeService{distributorRepo: distributorRepo}
}

// Root returns the tree root: the oldest distributor without a parent
func (s *TreeService) Root() (*models.Distributor, error) {
	root, err := s.distributorRepo.GetRoot()
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, ErrTreeNodeNotFound
	}
	return root, nil
}

// Subtree loads the subtree under nodeID, maxDepth levels deep.
// maxDepth <= 0 falls back to the default of 3; storage depth is unbounded.
func (s *TreeService) Subtree(nodeID uint, maxDepth int) (*TreeNode, error) {
	if maxDepth <= 0 {
		maxDepth = treeDefaultDepth
	}
	start, err := s.distributorRepo.GetByID(nodeID)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, ErrTreeNodeNotFound
	}

	root := buildTreeNode(start)
	frontier := map[uint]*TreeNode{start.ID: root}
	parents := map[uint]*models.Distributor{start.ID: start}

	for depth := 1; depth < maxDepth && len(frontier) > 0; depth++ {
		var childIDs []uint
		for id := range frontier {
			parent := parents[id]
			if parent.LeftChildID != nil {
				childIDs = append(childIDs, *parent.LeftChildID)
			}
			if parent.RightChildID != nil {
				childIDs = append(childIDs, *parent.RightChildID)
			}
		}
		if len(childIDs) == 0 {
			break
		}
		children, err := s.distributorRepo.ListByIDs(childIDs)
		if err != nil {
			return nil, err
		}
		byID := make(map[uint]*models.Distributor, len(children))
		for i := range children {
			byID[children[i].ID] = &children[i]
		}

		next := make(map[uint]*TreeNode)
		nextParents := make(map[uint]*models.Distributor)
		for id, node := range frontier {
			parent := parents[id]
			if parent.LeftChildID != nil {
				if child, ok := byID[*parent.LeftChildID]; ok {
					node.Left = buildTreeNode(child)
					next[child.ID] = node.Left
					nextParents[child.ID] = child
				}
			}
			if parent.RightChildID != nil {
				if child, ok := byID[*parent.RightChildID]; ok {
					node.Right = buildTreeNode(child)
					next[child.ID] = node.Right
					nextParents[child.ID] = child
				}
			}
		}
		frontier = next
		parents = nextParents
	}
	return root, nil
}

// Reparent moves nodeID under newParentID at the given slot. The whole move
// is one transaction: detach from the old parent's child pointer, attach to
// the new parent's slot, update ParentID and Position on the node.
func (s *TreeService) Reparent(nodeID, newParentID uint, slot string) error {
	slot = normalizeTreeSlot(slot)
	if slot == "" {
		return ErrTreeSlotInvalid
	}
	if nodeID == 0 || newParentID == 0 {
		return ErrTreeNodeNotFound
	}
	if nodeID == newParentID {
		return ErrTreeCycle
	}

	return s.distributorRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.distributorRepo.WithTx(tx)

		node, err := repo.GetByIDForUpdate(nodeID)
		if err != nil {
			return err
		}
		if node == nil {
			return ErrTreeNodeNotFound
		}
		if node.ParentID == nil {
			return ErrTreeRootImmovable
		}
		newParent, err := repo.GetByIDForUpdate(newParentID)
		if err != nil {
			return err
		}
		if newParent == nil {
			return ErrTreeNodeNotFound
		}

		// Cycle check: walk ancestors of the new parent; hitting the moved
		// node means the new parent lives in its subtree. The visited set
		// stops the walk on corrupted parent pointers.
		visited := map[uint]bool{newParent.ID: true}
		cursor := newParent
		for cursor.ParentID != nil {
			ancestorID := *cursor.ParentID
			if ancestorID == nodeID {
				return ErrTreeCycle
			}
			if visited[ancestorID] {
				break
			}
			visited[ancestorID] = true
			ancestor, err := repo.GetByID(ancestorID)
			if err != nil {
				return err
			}
			if ancestor == nil {
				break
			}
			cursor = ancestor
		}

		occupant := newParent.LeftChildID
		if slot == constants.TreeSlotRight {
			occupant = newParent.RightChildID
		}
		if occupant != nil {
			if *occupant == nodeID {
				// already in place
				return nil
			}
			return ErrTreeSlotOccupied
		}

		now := time.Now()
		oldParentID := *node.ParentID
		if oldParentID != newParentID || node.Position != slot {
			if err := detachChildPointer(tx, oldParentID, nodeID, now); err != nil {
				return err
			}
		}

		slotColumn := "left_child_id"
		if slot == constants.TreeSlotRight {
			slotColumn = "right_child_id"
		}
		if err := tx.Model(&models.Distributor{}).
			Where("id = ?", newParentID).
			Updates(map[string]interface{}{
				slotColumn:   nodeID,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Distributor{}).
			Where("id = ?", nodeID).
			Updates(map[string]interface{}{
				"parent_id":  newParentID,
				"position":   slot,
				"updated_at": now,
			}).Error
	})
}

// AttachInTx links a newly created child into parent's slot inside an
// existing transaction. Used at signup placement; the parent row must
// already be locked by the caller's transaction.
func (s *TreeService) AttachInTx(tx *gorm.DB, parent *models.Distributor, slot string, childID uint) error {
	slot = normalizeTreeSlot(slot)
	if slot == "" {
		return ErrTreeSlotInvalid
	}
	if parent == nil {
		return ErrTreeNodeNotFound
	}
	occupant := parent.LeftChildID
	slotColumn := "left_child_id"
	if slot == constants.TreeSlotRight {
		occupant = parent.RightChildID
		slotColumn = "right_child_id"
	}
	if occupant != nil {
		return ErrTreeSlotOccupied
	}
	now := time.Now()
	if err := tx.Model(&models.Distributor{}).
		Where("id = ?", parent.ID).
		Updates(map[string]interface{}{
			slotColumn:   childID,
			"updated_at": now,
		}).Error; err != nil {
		return err
	}
	return tx.Model(&models.Distributor{}).
		Where("id = ?", childID).
		Updates(map[string]interface{}{
			"parent_id":  parent.ID,
			"position":   slot,
			"updated_at": now,
		}).Error
}

func detachChildPointer(tx *gorm.DB, parentID, childID uint, now time.Time) error {
	if err := tx.Model(&models.Distributor{}).
		Where("id = ? AND left_child_id = ?", parentID, childID).
		Updates(map[string]interface{}{
			"left_child_id": nil,
			"updated_at":    now,
		}).Error; err != nil {
		return err
	}
	return tx.Model(&models.Distributor{}).
		Where("id = ? AND right_child_id = ?", parentID, childID).
		Updates(map[string]interface{}{
			"right_child_id": nil,
			"updated_at":     now,
		}).Error
}

func buildTreeNode(distributor *models.Distributor) *TreeNode {
	return &TreeNode{
		ID:          distributor.ID,
		Email:       distributor.Email,
		FullName:    distributor.FullName,
		Status:      distributor.Status,
		Position:    distributor.Position,
		LeftWallet:  distributor.LeftWallet,
		RightWallet: distributor.RightWallet,
		TotalWallet: distributor.TotalWallet,
	}
}

func normalizeTreeSlot(slot string) string {
	switch strings.ToLower(strings.TrimSpace(slot)) {
	case constants.TreeSlotLeft:
		return constants.TreeSlotLeft
	case constants.TreeSlotRight:
		return constants.TreeSlotRight
	default:
		return ""
	}
}
