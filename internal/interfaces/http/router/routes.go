package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/interfaces/http/handler"
	"github.com/rentflow/backend/internal/interfaces/http/middleware"
)

// Handlers are the API handlers mounted under /api/v1
type Handlers struct {
	System    *handler.SystemHandler
	Auth      *handler.AuthHandler
	Workspace *handler.WorkspaceHandler
	Property  *handler.PropertyHandler
	Tenancy   *handler.TenancyHandler
	Expense   *handler.ExpenseHandler
	Invoice   *handler.InvoiceHandler
	Payment   *handler.PaymentHandler
}

// Guards are the middleware chains protecting the routes
type Guards struct {
	// Authenticate validates the bearer token
	Authenticate gin.HandlerFunc
	// Session resolves the active role; it runs after Authenticate
	Session gin.HandlerFunc
	// AuthRateLimit throttles the unauthenticated auth endpoints; optional
	AuthRateLimit gin.HandlerFunc
	// SessionObservers run after Session, e.g. span attributes
	SessionObservers []gin.HandlerFunc
}

func (g Guards) authenticated() []gin.HandlerFunc {
	chain := []gin.HandlerFunc{g.Authenticate, g.Session}
	return append(chain, g.SessionObservers...)
}

func (g Guards) public(h gin.HandlerFunc) []gin.HandlerFunc {
	if g.AuthRateLimit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{g.AuthRateLimit, h}
}

// RegisterAPI adds the RentFlow route table to r
func RegisterAPI(r *Router, h Handlers, g Guards) {
	owner := middleware.RequireRole(identity.RoleOwner)
	tenant := middleware.RequireRole(identity.RoleTenant)
	with := func(extra ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(g.authenticated(), extra...)
	}

	system := NewDomainGroup("system", "")
	system.GET("/ping", h.System.Ping)
	system.GET("/system/info", h.System.GetSystemInfo)
	r.Register(system)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/signup", g.public(h.Auth.Signup)...)
	auth.POST("/login", g.public(h.Auth.Login)...)
	auth.POST("/refresh", g.public(h.Auth.RefreshToken)...)
	auth.POST("/password", g.public(h.Auth.SetPassword)...)
	auth.POST("/password-reset", g.public(h.Auth.RequestPasswordReset)...)
	auth.POST("/logout", g.Authenticate, h.Auth.Logout)
	auth.GET("/me", with(h.Auth.Me)...)
	r.Register(auth)

	workspace := NewDomainGroup("workspace", "").Use(g.authenticated()...)
	workspace.GET("/workspace", h.Workspace.Workspace)
	workspace.GET("/dashboard", owner, h.Workspace.Dashboard)
	r.Register(workspace)

	properties := NewDomainGroup("properties", "/properties").Use(with(owner)...)
	properties.GET("", h.Property.ListProperties)
	properties.POST("", h.Property.CreateProperty)
	properties.GET("/:id", h.Property.GetProperty)
	properties.PUT("/:id", h.Property.UpdateProperty)
	properties.DELETE("/:id", h.Property.DeleteProperty)
	properties.POST("/:id/owners", h.Property.AddOwner)
	r.Register(properties)

	tenancies := NewDomainGroup("tenancies", "/tenancies").Use(with(owner)...)
	tenancies.GET("", h.Tenancy.ListTenancies)
	tenancies.POST("", h.Tenancy.OnboardTenant)
	tenancies.PUT("/:id", h.Tenancy.UpdateTenancy)
	tenancies.DELETE("/:id", h.Tenancy.DeleteTenancy)
	tenancies.POST("/:id/deactivate", h.Tenancy.DeactivateTenancy)
	r.Register(tenancies)

	expenses := NewDomainGroup("expenses", "/expenses").Use(with(owner)...)
	expenses.GET("", h.Expense.ListExpenses)
	expenses.POST("", h.Expense.CreateExpense)
	expenses.PUT("/:id", h.Expense.UpdateExpense)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)
	r.Register(expenses)

	invoices := NewDomainGroup("invoices", "/invoices").Use(g.authenticated()...)
	invoices.GET("", h.Invoice.ListInvoices)
	invoices.GET("/:id", h.Invoice.GetInvoice)
	invoices.GET("/:id/statement.pdf", h.Invoice.Statement)
	invoices.POST("/generate", owner, h.Invoice.GenerateInvoices)
	invoices.PUT("/:id/utilities", owner, h.Invoice.UpdateUtilities)
	invoices.POST("/:id/verify-receipt", owner, h.Invoice.VerifyReceipt)
	invoices.POST("/:id/mark-paid", owner, h.Invoice.MarkPaid)
	invoices.POST("/:id/mark-partial", owner, h.Invoice.MarkPartial)
	invoices.POST("/:id/reject", owner, h.Invoice.Reject)
	r.Register(invoices)

	payments := NewDomainGroup("payments", "/payments").Use(with(tenant)...)
	payments.GET("/payable", h.Payment.PayableInvoices)
	payments.POST("", h.Payment.SubmitPayment)
	payments.POST("/receipt-upload-url", h.Payment.CreateReceiptUpload)
	r.Register(payments)
}
