package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/pricing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity" binding:"required,min=0"`
}

// CartSnapshotItem joins a cart line with the current catalog row. Prices here
// are for display only; they are frozen per line at checkout, not before.
type CartSnapshotItem struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Available bool    `json:"available"`
	LineTotal float64 `json:"line_total"`
}

type CartSnapshot struct {
	CartID   uint               `json:"cart_id"`
	Items    []CartSnapshotItem `json:"items"`
	Subtotal float64            `json:"subtotal"`
	Tax      float64            `json:"tax"`
	Total    float64            `json:"total"`
}

// GetOrCreateCart returns the user's cart, creating an empty one on first access.
func GetOrCreateCart(db *gorm.DB, userID string) (models.Cart, error) {
	var cart models.Cart
	err := db.Where("user_id = ?", userID).
		Attrs(models.Cart{UserID: userID}).
		FirstOrCreate(&cart).Error
	return cart, err
}

// BuildSnapshot assembles the cart read model: lines joined with current
// product name, price and availability, plus subtotal and taxed total.
func BuildSnapshot(db *gorm.DB, cartID uint) (CartSnapshot, error) {
	var cart models.Cart
	if err := db.Preload("Items").First(&cart, "cart_id = ?", cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartSnapshot{}, models.ErrCartNotFound
		}
		return CartSnapshot{}, err
	}

	snapshot := CartSnapshot{CartID: cart.CartID, Items: []CartSnapshotItem{}}
	if len(cart.Items) == 0 {
		return snapshot, nil
	}

	ids := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return CartSnapshot{}, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			// Product delisted since it was added; show the line without a price.
			snapshot.Items = append(snapshot.Items, CartSnapshotItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Available: false,
			})
			continue
		}
		lineTotal := product.Price * float64(item.Quantity)
		snapshot.Items = append(snapshot.Items, CartSnapshotItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Available: product.Available,
			LineTotal: lineTotal,
		})
		snapshot.Subtotal += lineTotal
	}
	snapshot.Tax = pricing.Tax(snapshot.Subtotal)
	snapshot.Total = pricing.Total(snapshot.Subtotal, 0)
	return snapshot, nil
}

// AddItem adds quantity to an existing line or creates a new one. This is an
// additive write: two adds of the same product accumulate. The increment runs
// as an upsert so concurrent adds from two devices cannot lose updates.
func AddItem(db *gorm.DB, cartID uint, productID uint, quantity int) error {
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			"added_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return err
	}
	return touchCart(db, cartID)
}

func touchCart(db *gorm.DB, cartID uint) error {
	return db.Model(&models.Cart{}).Where("cart_id = ?", cartID).
		Update("updated_at", time.Now()).Error
}

// GET /user/cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		respondWithSnapshot(c, db, cart.CartID, http.StatusOK)
	}
}

// POST /user/cart
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ?", input.ProductID).Error; err != nil {
			status := http.StatusInternalServerError
			errMsg := "Failed to validate product"
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusBadRequest
				errMsg = "Product does not exist"
			}
			c.JSON(status, gin.H{"error": errMsg})
			return
		}
		if !product.Available {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product is not available"})
			return
		}
		// Soft preview check. The cart is aspirational: the authoritative stock
		// check happens at checkout, this only catches obvious overshoots early.
		if input.Quantity > product.Stock {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":           "Requested quantity exceeds available stock",
				"available_stock": product.Stock,
			})
			return
		}

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if err := AddItem(db, cart.CartID, input.ProductID, input.Quantity); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		respondWithSnapshot(c, db, cart.CartID, http.StatusCreated)
	}
}

// PUT /user/cart
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		quantity := *input.Quantity
		if quantity == 0 {
			// Setting quantity to zero removes the line.
			if err := removeItem(db, cart.CartID, input.ProductID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
				return
			}
			respondWithSnapshot(c, db, cart.CartID, http.StatusOK)
			return
		}

		// Unlike add, update is an absolute set of the stored quantity.
		result := db.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cart.CartID, input.ProductID).
			Update("quantity", quantity)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		if err := touchCart(db, cart.CartID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		respondWithSnapshot(c, db, cart.CartID, http.StatusOK)
	}
}

func removeItem(db *gorm.DB, cartID uint, productID uint) error {
	// Idempotent: deleting a line that does not exist is a no-op success.
	if err := db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return touchCart(db, cartID)
}

// DELETE /user/cart/:product_id
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		productID := c.Param("product_id")

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if err := db.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).
			Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if err := touchCart(db, cart.CartID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		respondWithSnapshot(c, db, cart.CartID, http.StatusOK)
	}
}

// DELETE /user/cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		cart, err := GetOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if err := db.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		if err := touchCart(db, cart.CartID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		respondWithSnapshot(c, db, cart.CartID, http.StatusOK)
	}
}

func respondWithSnapshot(c *gin.Context, db *gorm.DB, cartID uint, status int) {
	snapshot, err := BuildSnapshot(db, cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build cart snapshot"})
		return
	}
	c.JSON(status, snapshot)
}
