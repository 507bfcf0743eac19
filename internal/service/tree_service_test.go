package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTreeServiceTest(t *testing.T) (*TreeService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:tree_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewTreeService(repository.NewDistributorRepository(db)), db
}

// seedTreeChain builds root(1) -> left child(2) -> left child(3)
func seedTreeChain(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now()
	for _, id := range []uint{1, 2, 3} {
		distributor := models.Distributor{
			ID:           id,
			Email:        fmt.Sprintf("node_%d@example.com", id),
			PasswordHash: "hash",
			Status:       constants.DistributorStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.Create(&distributor).Error; err != nil {
			t.Fatalf("create node failed: %v", err)
		}
	}
	link := func(parentID, childID uint, slot string) {
		column := "left_child_id"
		if slot == constants.TreeSlotRight {
			column = "right_child_id"
		}
		if err := db.Model(&models.Distributor{}).Where("id = ?", parentID).
			Update(column, childID).Error; err != nil {
			t.Fatalf("link failed: %v", err)
		}
		if err := db.Model(&models.Distributor{}).Where("id = ?", childID).
			Updates(map[string]interface{}{"parent_id": parentID, "position": slot}).Error; err != nil {
			t.Fatalf("link failed: %v", err)
		}
	}
	link(1, 2, constants.TreeSlotLeft)
	link(2, 3, constants.TreeSlotLeft)
}

func loadNode(t *testing.T, db *gorm.DB, id uint) *models.Distributor {
	t.Helper()
	var node models.Distributor
	if err := db.First(&node, id).Error; err != nil {
		t.Fatalf("load node %d failed: %v", id, err)
	}
	return &node
}

func TestTreeServiceRoot(t *testing.T) {
	svc, db := setupTreeServiceTest(t)
	seedTreeChain(t, db)

	root, err := svc.Root()
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	if root.ID != 1 {
		t.Fatalf("unexpected root: %d", root.ID)
	}
}

func TestTreeServiceSubtreeDefaultDepth(t *testing.T) {
	svc, db := setupTreeServiceTest(t)
	seedTreeChain(t, db)

	// depth <= 0 falls back to three levels, so node 3 is included
	tree, err := svc.Subtree(1, 0)
	if err != nil {
		t.Fatalf("subtree failed: %v", err)
	}
	if tree.Left == nil || tree.Left.ID != 2 {
		t.Fatalf("missing level-two node: %+v", tree.Left)
	}
	if tree.Left.Left == nil || tree.Left.Left.ID != 3 {
		t.Fatalf("missing level-three node: %+v", tree.Left.Left)
	}

	shallow, err := svc.Subtree(1, 2)
	if err != nil {
		t.Fatalf("subtree failed: %v", err)
	}
	if shallow.Left == nil || shallow.Left.Left != nil {
		t.Fatalf("depth limit not honored: %+v", shallow.Left)
	}
}

func TestTreeServiceSubtreeNodeNotFound(t *testing.T) {
	svc, db := setupTreeServiceTest(t)
	seedTreeChain(t, db)
	_ = db

	if _, err := svc.Subtree(999, 0); !errors.Is(err, ErrTreeNodeNotFound) {
		t.Fatalf("expected node not found, got: %v", err)
	}
}

func TestTreeServiceReparentCycleRejected(t *testing.T) {
	svc, db := setupTreeServiceTest(t)
	seedTreeChain(t, db)

	// node 3 is a descendant of node 2: moving 2 under 3 would cycle
	if err := svc.Reparent(2, 3, constants.TreeSlotRight); !errors.Is(err, ErrTreeCycle) {
		t.Fatalf("expected cycle rejection, got: %v", err)
	}
	if err := svc.Reparent(2, 2, constants.TreeSlotLeft); !errors.Is(err, ErrTreeCycle) {
		t.Fatalf("expected self-parent rejection, got: %v", err)
	}
}

func TestTreeServiceReparentSlotOccupied(t *testing.T) {
	svc, db := setupTreeServiceTest(t)
	seedTreeChain(t, db)

	// root's left slot is held by node 2
	if err := svc.Reparent(3, 1, constants.TreeSlotLeft); !errors.Is(err, ErrTreeSlotOccupied) {
		t.Fatalf("expected slot occupied, got: %v", err)
	}
}

func TestTreeServiceReparentMovesPointersConsistently(t *testing.T) {
	svc, db := setupTreeServiceTest(t)
	seedTreeChain(t, db)

	if err := svc.Reparent(3, 1, constants.TreeSlotRight); err != nil {
		t.Fatalf("reparent failed: %v", err)
	}

	root := loadNode(t, db, 1)
	oldParent := loadNode(t, db, 2)
	moved := loadNode(t, db, 3)

	if root.RightChildID == nil || *root.RightChildID != 3 {
		t.Fatalf("new parent pointer not set: %+v", root.RightChildID)
	}
	if oldParent.LeftChildID != nil {
		t.Fatalf("old parent pointer not cleared: %+v", oldParent.LeftChildID)
	}
	if moved.ParentID == nil || *moved.ParentID != 1 || moved.Position != constants.TreeSlotRight {
		t.Fatalf("moved node inconsistent: parent=%v position=%s", moved.ParentID, moved.Position)
	}
}

func TestTreeServiceReparentRootRejected(t *testing.T) {
	svc, db := setupTreeServiceTest(t)
	seedTreeChain(t, db)

	if err := svc.Reparent(1, 3, constants.TreeSlotRight); !errors.Is(err, ErrTreeRootImmovable) {
		t.Fatalf("expected root immovable, got: %v", err)
	}
}

func TestTreeServiceReparentInvalidSlot(t *testing.T) {
	svc, db := setupTreeServiceTest(t)
	seedTreeChain(t, db)

	if err := svc.Reparent(3, 1, "middle"); !errors.Is(err, ErrTreeSlotInvalid) {
		t.Fatalf("expected invalid slot, got: %v", err)
	}
}
