package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/secretvault/internal/logging"
	"github.com/dmitrijs2005/secretvault/internal/server/auth"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	Login(ctx context.Context, email, password, totpCode string, meta models.RequestMeta) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, meta models.RequestMeta) (*auth.TokenPair, error)
	Logout(ctx context.Context, userID, accessToken, refreshToken string, meta models.RequestMeta) error
	Authenticate(ctx context.Context, accessToken string) (*auth.Payload, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type vaultSvc interface {
	Create(ctx context.Context, userID string, in services.CreateEntryInput, meta models.RequestMeta) (*models.PublicEntry, error)
	List(ctx context.Context, userID string) ([]*models.PublicEntry, error)
	Update(ctx context.Context, userID, entryID string, in services.UpdateEntryInput, meta models.RequestMeta) (*models.PublicEntry, error)
	Delete(ctx context.Context, userID, entryID string, meta models.RequestMeta) error
	Reveal(ctx context.Context, req services.RevealRequest) (string, error)
}

type profileSvc interface {
	Status(ctx context.Context, userID string) (bool, error)
	Setup(ctx context.Context, userID string, answers services.Answers, meta models.RequestMeta) error
	Verify(ctx context.Context, userID string, answers services.Answers, meta models.RequestMeta) error
}

var (
	_ userSvc    = (*services.UserService)(nil)
	_ vaultSvc   = (*services.VaultService)(nil)
	_ profileSvc = (*services.SecurityProfileService)(nil)
)

type GRPCServer struct {
	address  string
	users    userSvc
	vault    vaultSvc
	profiles profileSvc
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, vs vaultSvc, ps profileSvc) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		vault:    vs,
		profiles: ps,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
	)
	srv.RegisterService(&serviceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
