package model

const DefaultInventoryName = "Basic_Inventory"

// Inventory 角色背包，与 Character 一对一
type Inventory struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"inventoriesId"`
	CharacterID int64  `gorm:"uniqueIndex;not null" json:"charactersId"`
	Name        string `gorm:"type:varchar(64);not null" json:"name"`
	Size        int    `gorm:"not null" json:"size"`
}

func (Inventory) TableName() string {
	return "inventories"
}

// InventoryItem 背包中的一种物品及其数量
// 数量只增减，行不会被显式删除
type InventoryItem struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	InventoryID int64  `gorm:"uniqueIndex:idx_inventory_item;not null" json:"-"`
	ItemCode    int64  `gorm:"uniqueIndex:idx_inventory_item;not null" json:"item_code"`
	ItemName    string `gorm:"type:varchar(64);not null" json:"item_name"`
	Quantity    int64  `gorm:"not null;default:0" json:"item_quantity"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// Equipment 已装备的物品，(CharacterID, Part) 唯一
// Health / Power 为装备时的属性快照，卸下时按快照扣减
type Equipment struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	CharacterID int64  `gorm:"uniqueIndex:idx_character_part;not null" json:"-"`
	Part        string `gorm:"type:varchar(16);uniqueIndex:idx_character_part;not null" json:"item_part"`
	ItemCode    int64  `gorm:"index;not null" json:"item_code"`
	ItemName    string `gorm:"type:varchar(64);not null" json:"item_name"`
	Health      int64  `gorm:"not null;default:0" json:"-"`
	Power       int64  `gorm:"not null;default:0" json:"-"`
}

func (Equipment) TableName() string {
	return "equipments"
}
