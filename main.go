// @title           BizDocs API
// @version         1.0
// @description     Business documents backend - invoices, quotations, clients, projects and salary configuration.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"backend/handlers"
	"backend/models"
	"backend/services"
	"backend/storage"
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

var cronRunning int32

func safeGo(wg *sync.WaitGroup, name string, fn func() error, cronLogger *log.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				if cronLogger != nil {
					cronLogger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				}
			}
		}()

		if err := fn(); err != nil {
			log.Printf("%s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("%s failed: %v", name, err)
			}
			return
		}
		log.Printf("%s completed successfully", name)
	}()
}

// markOverdueInvoices flips unpaid and partially paid invoices past
// their due date to overdue. Returns the affected invoice ids.
func markOverdueInvoices(db *sql.DB) ([]int, error) {
	rows, err := db.Query(`
		UPDATE invoice
		SET status = $1, updated_at = NOW()
		WHERE due_date < CURRENT_DATE
		  AND status IN ($2, $3)
		RETURNING id`,
		models.InvoiceStatusOverdue, models.InvoiceStatusUnpaid, models.InvoiceStatusPartialPaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// notifyOverdueInvoices sends the email reminder and push alert for each
// newly overdue invoice. Failures are logged per invoice, not fatal.
func notifyOverdueInvoices(ctx context.Context, db *sql.DB, emailService *services.EmailService, pushService *services.PushService, ids []int) error {
	for _, id := range ids {
		var invoiceNumber, clientName, status string
		var createdBy int
		var dueDate time.Time
		var grandTotal float64
		var clientEmail sql.NullString
		err := db.QueryRow(`
			SELECT i.invoice_number, COALESCE(i.to_party->>'name', ''), i.status,
				i.created_by, i.due_date, i.grand_total, c.email
			FROM invoice i
			LEFT JOIN client c ON i.client_id = c.client_id
			WHERE i.id = $1`, id).Scan(
			&invoiceNumber, &clientName, &status, &createdBy, &dueDate, &grandTotal, &clientEmail)
		if err != nil {
			log.Printf("overdue notify: invoice %d lookup failed: %v", id, err)
			continue
		}

		if clientEmail.Valid && clientEmail.String != "" {
			emailData := models.EmailData{
				InvoiceNumber: invoiceNumber,
				ClientName:    clientName,
				DueDate:       dueDate.Format("2006-01-02"),
				AmountDue:     strconv.FormatFloat(grandTotal, 'f', 2, 64),
				Email:         clientEmail.String,
			}
			if err := emailService.SendInvoiceDueEmail(emailData, nil); err != nil {
				log.Printf("overdue notify: email for invoice %s failed: %v", invoiceNumber, err)
			}
		}

		if err := pushService.NotifyOverdueInvoice(ctx, createdBy, invoiceNumber, clientName); err != nil {
			log.Printf("overdue notify: push for invoice %s failed: %v", invoiceNumber, err)
		}
	}
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db := storage.InitDB()
	gormDB := storage.InitGormDB()

	pushService, err := services.NewPushService(os.Getenv("FCM_CREDENTIALS_PATH"), db)
	if err != nil {
		log.Printf("Warning: Failed to initialize push service: %v. Push notifications will be disabled.", err)
		pushService = nil
	} else if pushService != nil {
		log.Println("Push service initialized successfully")
	}

	emailService := services.NewEmailService(db)

	// Daily maintenance at 00:30 server time.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 0 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		var wg sync.WaitGroup

		safeGo(&wg, "CleanupExpiredSessions", func() error {
			return storage.CleanupExpiredSessions(db)
		}, cronLogger)

		safeGo(&wg, "MarkOverdueInvoices", func() error {
			ids, err := markOverdueInvoices(db)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return nil
			}
			log.Printf("Marked %d invoices overdue", len(ids))
			return notifyOverdueInvoices(ctx, db, emailService, pushService, ids)
		}, cronLogger)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All cron jobs finished")
		case <-ctx.Done():
			log.Println("Cron timeout reached, jobs cancelled")
			if cronLogger != nil {
				cronLogger.Println("Cron timeout reached, jobs cancelled")
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))

	// ==================== 2. USERS ====================
	r.POST("/api/create_user", handlers.CreateUser(db))
	r.GET("/api/users", handlers.GetAllUsers(db))
	r.DELETE("/api/user_delete/:id", handlers.DeleteUser(db))

	// ==================== 3. CLIENTS ====================
	r.POST("/api/clients", handlers.CreateClient(db))
	r.GET("/api/clients", handlers.GetAllClients(db))
	r.GET("/api/client/:id", handlers.GetClient(db))
	r.PUT("/api/client_update/:id", handlers.UpdateClient(db))
	r.DELETE("/api/client_delete/:id", handlers.DeleteClient(db))

	// ==================== 4. PROJECTS ====================
	r.POST("/api/projects", handlers.CreateProject(db))
	r.GET("/api/projects", handlers.GetAllProjects(db))
	r.GET("/api/project/:id", handlers.GetProject(db))
	r.GET("/api/client_projects/:id", handlers.GetProjectsByClientId(db))
	r.PUT("/api/project_update/:id", handlers.UpdateProject(db))
	r.DELETE("/api/project_delete/:id", handlers.DeleteProject(db))

	// ==================== 5. INVOICES ====================
	r.POST("/api/invoices", handlers.CreateInvoice(db))
	r.GET("/api/invoice/:id", handlers.GetInvoice(db))
	r.GET("/api/allinvoices/:id", handlers.GetAllInvoicesByProjectId(db))
	r.PUT("/api/invoice_update/:id", handlers.UpdateInvoice(db))
	r.PUT("/api/invoice_status/:id", handlers.UpdateInvoiceStatus(db))
	r.DELETE("/api/invoice_delete/:id", handlers.DeleteInvoice(db))

	// ==================== 6. QUOTATIONS ====================
	r.POST("/api/quotations", handlers.CreateQuotation(gormDB))
	r.GET("/api/quotation/:id", handlers.GetQuotation(gormDB))
	r.GET("/api/allquotations/:id", handlers.GetAllQuotationsByProjectId(gormDB))
	r.PUT("/api/quotation_update/:id", handlers.UpdateQuotation(gormDB))
	r.DELETE("/api/quotation_delete/:id", handlers.DeleteQuotation(gormDB))

	// ==================== 7. SALARY CONFIG ====================
	r.POST("/api/salary_configs", handlers.CreateSalaryConfig(gormDB))
	r.GET("/api/salary_configs", handlers.GetAllSalaryConfigs(gormDB))
	r.PUT("/api/salary_config/:id", handlers.UpdateSalaryConfig(gormDB))
	r.DELETE("/api/salary_config/:id", handlers.DeleteSalaryConfig(gormDB))

	// ==================== 8. DOCUMENTS & EXPORT ====================
	r.GET("/api/invoice_pdf/:id", handlers.GenerateInvoicePDF(db))
	r.GET("/api/quotation_pdf/:id", handlers.GenerateQuotationPDF(gormDB))
	r.GET("/api/invoice_qr/:id", handlers.GenerateInvoiceQRCodeJPEG(db))
	r.GET("/api/export_csv_invoices/:project_id", handlers.ExportInvoicesCSV(db))
	r.GET("/api/export_csv_quotations/:project_id", handlers.ExportQuotationsCSV(gormDB))
	r.GET("/api/export_xlsx_invoices/:project_id", handlers.ExportInvoicesXLSX(db))

	// ==================== 9. NOTIFICATIONS ====================
	r.POST("/api/fcm/register-token", handlers.RegisterPushToken(db, pushService))
	r.DELETE("/api/fcm/remove-token", handlers.RemovePushToken(db, pushService))
	r.POST("/api/email_template_preview/:id", handlers.PreviewEmailTemplate(db, emailService))

	// ==================== 10. DOCS ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(20 * time.Second):
		log.Println("Warning: cron jobs did not finish before shutdown timeout")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
