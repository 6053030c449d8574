package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/restoweb/pos-api/config"
	"github.com/restoweb/pos-api/middleware"
	"github.com/restoweb/pos-api/models"
	"github.com/restoweb/pos-api/utils"
)

// LoginRequest represents the request body for authentication
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the request body for first-account registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// CreateStaffRequest represents the request body for admin staff creation.
// Role flags accept both booleans and stringy booleans from the dashboard.
type CreateStaffRequest struct {
	Name      string         `json:"name" binding:"required"`
	Email     string         `json:"email" binding:"required,email"`
	Password  string         `json:"password" binding:"required,min=6"`
	IsKitchen utils.FlexBool `json:"isKitchen"`
	IsWaiter  utils.FlexBool `json:"isWaiter"`
	Salary    float64        `json:"salary"`
	Advance   float64        `json:"advance"`
}

// UpdateUserRequest represents the request body for admin user updates
type UpdateUserRequest struct {
	Name          string                  `json:"name"`
	Email         string                  `json:"email" binding:"omitempty,email"`
	Password      string                  `json:"password"`
	IsKitchen     *utils.FlexBool         `json:"isKitchen"`
	IsWaiter      *utils.FlexBool         `json:"isWaiter"`
	Salary        *float64                `json:"salary"`
	Advance       *float64                `json:"advance"`
	SalaryHistory []models.SalarySnapshot `json:"salaryHistory"`
}

// authResponse is the profile+token payload returned by login and register.
func authResponse(user *models.User, token string) gin.H {
	return gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"isAdmin":   user.IsAdmin,
		"isKitchen": user.IsKitchen,
		"isWaiter":  user.IsWaiter,
		"token":     token,
	}
}

// Login handles POST /api/auth/login - authenticates by email and password
// and appends a login timestamp to the account's history.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Email and password are required",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil || !user.MatchPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Invalid email or password",
			},
		})
		return
	}

	user.LoginHistory = append(user.LoginHistory, time.Now())
	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record login",
			},
		})
		return
	}

	token, err := middleware.GenerateToken(user.ID, config.GetConfig().JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOKEN_ERROR",
				"message": "Failed to issue token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    authResponse(&user, token),
	})
}

// Register handles POST /api/auth/register - open self-registration exists
// only to bootstrap the very first account, which becomes the admin. Once
// any admin exists, registration is permanently disabled; further accounts
// are created by an admin via CreateStaff.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid user data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()

	var adminCount int64
	if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&adminCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check existing users",
			},
		})
		return
	}
	if adminCount > 0 {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Registration disabled",
			},
		})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  true, // first user becomes admin
	}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "User already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create user",
			},
		})
		return
	}

	token, err := middleware.GenerateToken(user.ID, config.GetConfig().JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOKEN_ERROR",
				"message": "Failed to issue token",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    authResponse(&user, token),
	})
}

// CreateStaff handles POST /api/auth/staff - admin creates kitchen/waiter
// accounts. A non-zero starting salary seeds the salary history.
func CreateStaff(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Name, email and password are required",
				"details": err.Error(),
			},
		})
		return
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		IsAdmin:   false,
		IsKitchen: req.IsKitchen.Bool(),
		IsWaiter:  req.IsWaiter.Bool(),
		Salary:    req.Salary,
		Advance:   req.Advance,
	}
	if req.Salary > 0 {
		user.SalaryHistory = []models.SalarySnapshot{
			{Amount: req.Salary, Advance: req.Advance, Date: time.Now()},
		}
	}

	db := config.GetDB()
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "User already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create user",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetUsers handles GET /api/auth/users - all accounts, newest first. Admin only.
func GetUsers(c *gin.Context) {
	db := config.GetDB()

	var users []models.User
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// UpdateUser handles PUT /api/auth/users/:id - admin edits an account. Any
// salary or advance change appends a snapshot to the salary history; a
// supplied salaryHistory replaces the stored history wholesale (that is how
// the dashboard deletes entries).
func UpdateUser(c *gin.Context) {
	db := config.GetDB()

	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.IsKitchen != nil {
		user.IsKitchen = req.IsKitchen.Bool()
	}
	if req.IsWaiter != nil {
		user.IsWaiter = req.IsWaiter.Bool()
	}

	if req.Salary != nil {
		newAdvance := user.Advance
		if req.Advance != nil {
			newAdvance = *req.Advance
		}
		if *req.Salary != user.Salary || newAdvance != user.Advance {
			user.SalaryHistory = append(user.SalaryHistory, models.SalarySnapshot{
				Amount:  *req.Salary,
				Advance: newAdvance,
				Paid:    0,
				Date:    time.Now(),
			})
		}
		user.Salary = *req.Salary
		user.Advance = newAdvance
	} else if req.Advance != nil {
		user.Advance = *req.Advance
	}

	if req.Password != "" {
		user.Password = req.Password // hashed by the model's BeforeSave hook
	}
	if req.SalaryHistory != nil {
		user.SalaryHistory = req.SalaryHistory
	}

	if err := db.Save(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "Email already in use",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// DeleteUser handles DELETE /api/auth/users/:id - admin removes an account.
// Admins cannot delete themselves.
func DeleteUser(c *gin.Context) {
	db := config.GetDB()

	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	if current, ok := middleware.CurrentUser(c); ok && current.ID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Cannot delete your own account",
			},
		})
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"message": "User removed"},
	})
}
